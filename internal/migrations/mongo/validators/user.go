package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"username",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"username": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 50,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
