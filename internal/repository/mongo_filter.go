package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"products-api/internal/models"
	"products-api/internal/query"
)

const scoreField = "score"

// FilterToBSON traduce el predicado tipado al filtro nativo de MongoDB
func FilterToBSON(f query.Filter) bson.D {
	filter := bson.D{}

	for _, c := range f.Conditions {
		switch c := c.(type) {
		case query.Equals:
			if c.FoldCase {
				filter = append(filter, bson.E{Key: c.Field, Value: anchoredRegex(c.Value)})
			} else {
				filter = append(filter, bson.E{Key: c.Field, Value: c.Value})
			}
		case query.Contains:
			filter = append(filter, bson.E{Key: c.Field, Value: containsRegex(c.Value)})
		case query.Range:
			if r := rangeToBSON(c); len(r) > 0 {
				filter = append(filter, bson.E{Key: c.Field, Value: r})
			}
		case query.AnyOf:
			patterns := make(bson.A, 0, len(c.Values))
			for _, v := range c.Values {
				patterns = append(patterns, containsRegex(v))
			}
			filter = append(filter, bson.E{Key: c.Field, Value: bson.D{{Key: "$in", Value: patterns}}})
		case query.AnyFieldContains:
			or := make(bson.A, 0, len(c.Fields))
			for _, field := range c.Fields {
				or = append(or, bson.D{{Key: field, Value: containsRegex(c.Value)}})
			}
			filter = append(filter, bson.E{Key: "$or", Value: or})
		case query.TextSearch:
			filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: c.Term}}})
		case query.ExcludeID:
			filter = append(filter, bson.E{Key: models.FieldID, Value: bson.D{{Key: "$ne", Value: c.ID}}})
		}
	}

	return filter
}

// SortToBSON traduce el orden. Se desempata por _id para que la paginación sea estable.
func SortToBSON(s query.Sort) bson.D {
	if s.Relevance {
		return bson.D{
			{Key: scoreField, Value: bson.D{{Key: "$meta", Value: "textScore"}}},
			{Key: models.FieldID, Value: 1},
		}
	}

	dir := -1
	if s.Ascending {
		dir = 1
	}
	field := s.Field
	if field == "" {
		field = models.FieldCreatedAt
	}
	return bson.D{{Key: field, Value: dir}, {Key: models.FieldID, Value: dir}}
}

func rangeToBSON(r query.Range) bson.D {
	d := bson.D{}
	if r.Lower != nil {
		op := "$gt"
		if r.Lower.Inclusive {
			op = "$gte"
		}
		d = append(d, bson.E{Key: op, Value: r.Lower.Value})
	}
	if r.Upper != nil {
		op := "$lt"
		if r.Upper.Inclusive {
			op = "$lte"
		}
		d = append(d, bson.E{Key: op, Value: r.Upper.Value})
	}
	return d
}

func anchoredRegex(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

func containsRegex(v string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
}
