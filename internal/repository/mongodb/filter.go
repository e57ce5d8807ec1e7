package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/query"
	"fix-my-city/internal/utils"
)

var operators = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
	query.OpIn:  "$in",
}

// filterToBSON переводит типизированный фильтр в документ MongoDB.
// Условия на одно поле объединяются в один поддокумент операторов.
func filterToBSON(req query.Request) (bson.M, error) {
	out := bson.M{}

	for _, cond := range req.Filter {
		op, ok := operators[cond.Op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q", errs.ErrValidation, cond.Op)
		}

		value, err := bsonValue(cond)
		if err != nil {
			return nil, err
		}

		ops, _ := out[cond.Field.Path].(bson.M)
		if ops == nil {
			ops = bson.M{}
			out[cond.Field.Path] = ops
		}
		ops[op] = value
	}

	if req.Near != nil {
		out["location.coordinates"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{req.Near.Lng, req.Near.Lat},
					req.Near.RadiusMeters / utils.EarthRadiusMeters,
				},
			},
		}
	}

	return out, nil
}

func bsonValue(cond query.Condition) (any, error) {
	if cond.Field.Kind != query.KindID {
		return cond.Value, nil
	}

	if cond.Op == query.OpIn {
		values, _ := cond.Value.([]any)
		ids := make(bson.A, 0, len(values))
		for _, v := range values {
			id, err := toObjectID(v)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	return toObjectID(cond.Value)
}

func toObjectID(v any) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", errs.ErrValidation, id)
		}
		return oid, nil
	}
	return primitive.NilObjectID, fmt.Errorf("%w: invalid id %v", errs.ErrValidation, v)
}

// sortToBSON всегда добавляет _id по убыванию последним ключом.
func sortToBSON(fields []query.SortField) bson.D {
	out := make(bson.D, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		if f.Field.Path == "_id" {
			hasID = true
		}
		out = append(out, bson.E{Key: f.Field.Path, Value: dir})
	}
	if !hasID {
		out = append(out, bson.E{Key: "_id", Value: -1})
	}
	return out
}
