package validators

import "go.mongodb.org/mongo-driver/bson"

// LedgerValidator accepts ledger documents as the mongo reservation store
// writes them. Rule checks beyond shape stay in the application so that
// hand-edited records can still be loaded and reported.
var LedgerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "reservations", "updated_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"reservations": bson.M{
				"bsonType": "array",
				"items":    ReservationValidator,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var ReservationValidator = bson.M{
	"bsonType": "object",
	"required": []string{
		"room",
		"day",
		"start",
		"duration_hours",
		"occupant",
	},
	"additionalProperties": true,

	"properties": bson.M{
		"id": bson.M{
			"bsonType": "string",
		},

		"room": bson.M{
			"bsonType": "string",
		},

		"day": bson.M{
			"bsonType": "string",
		},

		"start": bson.M{
			"bsonType": "string",
			"pattern":  `^[0-9]{2}:[0-9]{2}$`,
		},

		"duration_hours": bson.M{
			"bsonType": []string{"int", "long"},
			"minimum":  1,
			"maximum":  24,
		},

		"occupant": bson.M{
			"bsonType": "string",
		},
	},
}
