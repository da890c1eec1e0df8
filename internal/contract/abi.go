package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var ErrMissingMethod = errors.New("abi is missing a required method")

// requiredMethods are the token methods the transfer workflow calls.
var requiredMethods = []string{"balanceOf", "transfer"}

// LoadABI reads a JSON ABI from a file path or an http(s) URL.
func LoadABI(ctx context.Context, source string) (abi.ABI, error) {
	r, err := open(ctx, source)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("load abi %s: %w", source, err)
	}
	defer r.Close()

	parsed, err := abi.JSON(r)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi %s: %w", source, err)
	}
	for _, name := range requiredMethods {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("%w: %s", ErrMissingMethod, name)
		}
	}
	return parsed, nil
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
