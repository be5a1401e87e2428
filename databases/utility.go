package databases

import "go.mongodb.org/mongo-driver/mongo/options"

// Paginate converts one-based page/limit values into mongo find options.
// Pages below one are clamped to the first page.
func Paginate(limit, page int64) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(skip)
}
