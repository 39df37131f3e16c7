// Package fedsearch provides an embeddable Go client for the federated search
// engine. It queries the per-entity RediSearch indexes directly, without the
// HTTP service in between.
//
// Every call takes the caller identity. Regular searches are always confined
// to the caller's tenant; AdminSearch requires an admin principal and spans
// all tenants.
//
//	client, err := fedsearch.New(ctx, fedsearch.WithRedis("localhost:6379", ""))
//	if err != nil { ... }
//	defer client.Close()
//
//	who := fedsearch.Principal{UserID: "u1", TenantID: "acme"}
//	resp, err := client.GlobalSearch(ctx, fedsearch.Request{
//	    Query:       "north",
//	    EntityTypes: []fedsearch.EntityType{fedsearch.Zone, fedsearch.Sensor},
//	    Fuzzy:       &fedsearch.Fuzzy{Enabled: true},
//	}, who)
//
// Partial failures do not fail the call: Response.FailedEntityTypes and
// Response.Warnings say which entity types are missing from the results.
package fedsearch
