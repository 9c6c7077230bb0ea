package store

import (
	"reflect"
	"testing"

	perrors "github.com/abgdnv/meiasjamais/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type widget struct {
	ID    bson.ObjectID `bson:"_id,omitempty"`
	Label string        `bson:"label"`
}

func Test_CollectionName(t *testing.T) {
	testCases := []struct {
		typeName string
		expected string
	}{
		{typeName: "Post", expected: "posts"},
		{typeName: "Product", expected: "products"},
		{typeName: "Contact", expected: "contacts"},
		{typeName: "UserAddress", expected: "useraddresss"},
	}

	for _, tc := range testCases {
		t.Run(tc.typeName, func(t *testing.T) {
			assert.Equal(t, tc.expected, CollectionName(tc.typeName))
		})
	}
}

func Test_ParseID(t *testing.T) {
	testCases := []struct {
		name        string
		hex         string
		expectError error
	}{
		{name: "Success - valid hex", hex: "64b7f0c2a1b2c3d4e5f60718"},
		{name: "Success - upper case hex", hex: "64B7F0C2A1B2C3D4E5F60718"},
		{name: "Error - empty", hex: "", expectError: perrors.ErrInvalidID},
		{name: "Error - too short", hex: "64b7f0c2", expectError: perrors.ErrInvalidID},
		{name: "Error - too long", hex: "64b7f0c2a1b2c3d4e5f6071800", expectError: perrors.ErrInvalidID},
		{name: "Error - not hex", hex: "zzzzzzzzzzzzzzzzzzzzzzzz", expectError: perrors.ErrInvalidID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			id, err := ParseID(tc.hex)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Len(t, id.Hex(), 24)
		})
	}
}

func Test_NewDescriptor_Codec(t *testing.T) {
	// given
	desc := NewDescriptor[widget]("Widget")
	// when
	doc, err := desc.Encode(widget{Label: "knob"})
	require.NoError(t, err)
	decoded, err := desc.Decode(doc)
	// then
	require.NoError(t, err)
	assert.Equal(t, "widgets", desc.Collection)
	assert.Equal(t, widget{Label: "knob"}, decoded)
	_, err = doc.LookupErr("_id")
	assert.Error(t, err, "zero identifier must not be encoded")
}

type gadget struct {
	ID      bson.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	Note    *string       `json:"note" bson:"note,omitempty"`
	Owner   string        `json:"owner" bson:"owner"`
	Part    widget        `json:"part" bson:"part"`
	Spare   *widget       `json:"spare" bson:"spare"`
	Count   int32         `json:"count" bson:"count"`
	Skipped string        `json:"-" bson:"-"`
}

func Test_RequiredFields(t *testing.T) {
	testCases := []struct {
		tag      string
		expected []string
	}{
		{tag: "bson", expected: []string{"owner", "part", "part.label", "count"}},
		{tag: "json", expected: []string{"owner", "part", "part.Label", "count"}},
	}

	for _, tc := range testCases {
		t.Run(tc.tag, func(t *testing.T) {
			assert.Equal(t, tc.expected, RequiredFields(reflect.TypeFor[gadget](), tc.tag))
		})
	}
}

func Test_CheckRequired(t *testing.T) {
	paths := []string{"owner", "part", "part.label", "count"}
	testCases := []struct {
		name      string
		doc       bson.D
		expectErr bool
	}{
		{
			name: "Success - every field present",
			doc:  bson.D{{Key: "owner", Value: ""}, {Key: "part", Value: bson.D{{Key: "label", Value: ""}}}, {Key: "count", Value: int32(0)}},
		},
		{name: "Error - empty document", doc: bson.D{}, expectErr: true},
		{
			name:      "Error - nested field missing",
			doc:       bson.D{{Key: "owner", Value: "ana"}, {Key: "part", Value: bson.D{}}, {Key: "count", Value: int32(1)}},
			expectErr: true,
		},
		{
			name:      "Error - null field",
			doc:       bson.D{{Key: "owner", Value: nil}, {Key: "part", Value: bson.D{{Key: "label", Value: "x"}}}, {Key: "count", Value: int32(1)}},
			expectErr: true,
		},
		{
			name:      "Error - nested path through a scalar",
			doc:       bson.D{{Key: "owner", Value: "ana"}, {Key: "part", Value: "flat"}, {Key: "count", Value: int32(1)}},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			raw, err := bson.Marshal(tc.doc)
			require.NoError(t, err)
			// when
			err = CheckRequired(raw, paths)
			// then
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_NewDescriptor_DecodeRejectsMissingField(t *testing.T) {
	// given
	desc := NewDescriptor[widget]("Widget")
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: bson.NewObjectID()}})
	require.NoError(t, err)
	// when
	_, err = desc.Decode(raw)
	// then
	assert.ErrorContains(t, err, `"label"`)
	assert.Equal(t, []string{"label"}, desc.Required)
}
