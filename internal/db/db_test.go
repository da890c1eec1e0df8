package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"token-transfer-wallet/internal/model"
)

func TestUninitialized(t *testing.T) {
	prev := DB
	DB = nil
	defer func() { DB = prev }()

	assert.ErrorIs(t, RecordTransfer(context.Background(), model.TransferRecord{}), ErrNotInitialized)
	_, err := ListTransfers(context.Background(), "0x01", 1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, CloseDB())
}

func TestInitDBMigrateFailure(t *testing.T) {
	prevDriver, prevDB := driverName, DB
	driverName, DB = "broken-schema", nil
	defer func() { driverName, DB = prevDriver, prevDB }()

	err := InitDB("ignored")
	require.ErrorIs(t, err, errPermissionDenied)
	assert.Nil(t, DB)
	assert.Positive(t, brokenSchema.closed.Load())
}

// JournalSuite runs against a real Postgres named by DATABASE_URL.
type JournalSuite struct {
	suite.Suite
}

func TestJournalSuite(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("No .env file found")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	suite.Run(t, new(JournalSuite))
}

func (s *JournalSuite) SetupSuite() {
	require.NoError(s.T(), InitDB(os.Getenv("DATABASE_URL")))
}

func (s *JournalSuite) TearDownSuite() {
	s.NoError(CloseDB())
	s.Nil(DB)
}

func (s *JournalSuite) SetupTest() {
	_, err := DB.Exec(`TRUNCATE TABLE transfers`)
	s.Require().NoError(err)
}

func (s *JournalSuite) TestRecordAndList() {
	ctx := context.Background()
	from := "0x00000000000000000000000000000000000000AA"
	base := time.Now().UTC().Truncate(time.Second)

	for i, hash := range []string{"0x01", "0x02"} {
		err := Journal{}.RecordTransfer(ctx, model.TransferRecord{
			TxHash:      hash,
			FromAddress: from,
			ToAddress:   "0x00000000000000000000000000000000000000bb",
			Amount:      "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			Status:      "success",
			BlockNumber: uint64(100 + i),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		})
		s.Require().NoError(err)
	}

	records, err := ListTransfers(ctx, "0x00000000000000000000000000000000000000aa", 10)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("0x02", records[0].TxHash)
	s.Equal(uint64(101), records[0].BlockNumber)
	s.Equal("115792089237316195423570985008687907853269984665640564039457584007913129639935", records[0].Amount)

	received, err := ListTransfers(ctx, "0x00000000000000000000000000000000000000BB", 1)
	s.Require().NoError(err)
	s.Len(received, 1)
}

func (s *JournalSuite) TestRecordUpdatesStatus() {
	ctx := context.Background()
	rec := model.TransferRecord{
		TxHash:      "0x03",
		FromAddress: "0x00000000000000000000000000000000000000aa",
		ToAddress:   "0x00000000000000000000000000000000000000bb",
		Amount:      "10",
		Status:      "success",
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(RecordTransfer(ctx, rec))
	rec.Status = "reverted"
	s.Require().NoError(RecordTransfer(ctx, rec))

	records, err := ListTransfers(ctx, rec.FromAddress, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("reverted", records[0].Status)
}
