package graphql

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/graphql-go/graphql"

	"token-transfer-wallet/internal/graph"
)

type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

func NewHandler(resolver *graph.Resolver) http.Handler {
	schema, err := createSchema(resolver)
	if err != nil {
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		var req GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Error parsing request body", http.StatusBadRequest)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		json.NewEncoder(w).Encode(result)
	})
}

func createSchema(resolver *graph.Resolver) (graphql.Schema, error) {
	displayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Display",
		Fields: graphql.Fields{
			"account": &graphql.Field{
				Type: graphql.String,
			},
			"balance": &graphql.Field{
				Type: graphql.String,
			},
			"error": &graphql.Field{
				Type: graphql.String,
			},
			"errorVisible": &graphql.Field{
				Type: graphql.Boolean,
			},
			"alert": &graphql.Field{
				Type: graphql.String,
			},
		},
	})

	transferResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransferResult",
		Fields: graphql.Fields{
			"outcome": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
			},
			"txHash": &graphql.Field{
				Type: graphql.String,
			},
			"display": &graphql.Field{
				Type: displayType,
			},
		},
	})

	transferType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transfer",
		Fields: graphql.Fields{
			"txHash": &graphql.Field{
				Type: graphql.String,
			},
			"from_address": &graphql.Field{
				Type: graphql.String,
			},
			"to_address": &graphql.Field{
				Type: graphql.String,
			},
			"amount": &graphql.Field{
				Type: graphql.String,
			},
			"status": &graphql.Field{
				Type: graphql.String,
			},
			"blockNumber": &graphql.Field{
				Type: graphql.Int,
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"display": &graphql.Field{
				Type: displayType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolver.GetDisplay(), nil
				},
			},
			"transfers": &graphql.Field{
				Type: graphql.NewList(transferType),
				Args: graphql.FieldConfigArgument{
					"account": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
					"limit": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					account := p.Args["account"].(string)
					limit, _ := p.Args["limit"].(int)
					return resolver.ListTransfers(p.Context, account, limit)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"connect": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolver.Connect(p.Context)
				},
			},
			"sendMoney": &graphql.Field{
				Type: transferResultType,
				Args: graphql.FieldConfigArgument{
					"receiver": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
					"amount": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args := graph.SendMoneyArgs{}
					args.Receiver, _ = p.Args["receiver"].(string)
					args.Amount, _ = p.Args["amount"].(string)
					return resolver.SendMoney(p.Context, args)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
