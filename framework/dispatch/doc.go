// Package dispatch builds notification and request pipelines on top of
// capability resolution.
//
//	publisher := dispatch.NewPublisher[OrderPlaced](resolver, log)
//	err := publisher.Publish(ctx, OrderPlaced{ID: "A-1"})  // every handler runs
//
//	revenue, err := dispatch.Send[RevenueQuery, Revenue](ctx, resolver, RevenueQuery{})
package dispatch
