package validators

import (
	"reflect"
	"strings"
	"testing"

	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReservationValidator_CoversModelFields(t *testing.T) {
	props := ReservationValidator["properties"].(bson.M)

	typ := reflect.TypeOf(model.Reservation{})
	for i := range typ.NumField() {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("bson"), ",")
		assert.Contains(t, props, name, "field %s has no schema property", typ.Field(i).Name)
	}

	for _, required := range ReservationValidator["required"].([]string) {
		assert.Contains(t, props, required)
	}
}

func TestLedgerValidator_EmbedsReservationSchema(t *testing.T) {
	schema := LedgerValidator["$jsonSchema"].(bson.M)
	props := schema["properties"].(bson.M)
	reservations := props["reservations"].(bson.M)

	assert.Equal(t, "array", reservations["bsonType"])
	assert.Equal(t, ReservationValidator, reservations["items"])
}
