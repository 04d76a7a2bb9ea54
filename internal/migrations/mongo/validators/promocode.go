package validators

import "go.mongodb.org/mongo-driver/bson"

var PromoCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"code",
			"percent",
			"valid_from",
			"valid_to",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"code": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},

			"percent": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  100,
			},

			"valid_from": bson.M{
				"bsonType": "date",
			},

			"valid_to": bson.M{
				"bsonType": "date",
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
