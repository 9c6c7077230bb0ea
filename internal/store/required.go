package store

import (
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RequiredFields lists the dotted key paths that a document of type t must carry, read from the struct tag
// named tag ("bson" or "json"). Pointer fields and fields tagged omitempty or omitzero are optional.
// Struct fields are required themselves and contribute their own required keys.
func RequiredFields(t reflect.Type, tag string) []string {
	var paths []string
	collectRequired(t, tag, "", &paths)
	return paths
}

func collectRequired(t reflect.Type, tag, prefix string, paths *[]string) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
			if tag == "bson" {
				name = strings.ToLower(name)
			}
		}
		if field.Type.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty") || strings.Contains(opts, "omitzero") {
			continue
		}
		path := prefix + name
		*paths = append(*paths, path)
		if field.Type.Kind() == reflect.Struct {
			collectRequired(field.Type, tag, path+".", paths)
		}
	}
}

// CheckRequired fails if doc lacks one of paths or holds null at it.
func CheckRequired(doc Document, paths []string) error {
	for _, path := range paths {
		val, err := doc.LookupErr(strings.Split(path, ".")...)
		if err != nil {
			return fmt.Errorf("missing field %q", path)
		}
		if val.Type == bson.TypeNull {
			return fmt.Errorf("field %q is null", path)
		}
	}
	return nil
}
