package reflection

import (
	"reflect"
	"strings"
	"unicode"
)

// walkFields calls fn for every exported field of typ, descending into embedded structs.
// The index path is relative to typ and usable with reflect.Value.FieldByIndex.
func walkFields(typ reflect.Type, index []int, fn func(field reflect.StructField, index []int)) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		path := append(append([]int{}, index...), i)

		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				// Embedded pointers cannot be walked without allocation
				continue
			}
			if fieldType.Kind() == reflect.Struct && !isBunBaseModel(fieldType) {
				walkFields(fieldType, path, fn)
				continue
			}
		}

		if !field.IsExported() || isBunBaseModel(field.Type) {
			continue
		}
		if field.Tag.Get("bun") == "-" || field.Tag.Get("gorm") == "-" || field.Tag.Get("json") == "-" {
			continue
		}
		fn(field, path)
	}
}

func isBunBaseModel(typ reflect.Type) bool {
	return typ.Name() == "BaseModel" && typ.PkgPath() == "github.com/uptrace/bun/schema"
}

// getColumnNameFromField extracts the column name from a struct field
// Priority: bun tag -> gorm tag -> snake_case field name
func getColumnNameFromField(field reflect.StructField) string {
	if colName := ExtractColumnFromBunTag(field.Tag.Get("bun")); colName != "" {
		return colName
	}
	if colName := ExtractColumnFromGormTag(field.Tag.Get("gorm")); colName != "" {
		return colName
	}
	return ToSnakeCase(field.Name)
}

// getJSONNameFromField returns the wire name of a field, falling back to the Go name
func getJSONNameFromField(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
		return name
	}
	return field.Name
}

// isPrimaryKeyField reports whether bun or gorm marks the field as primary key.
// A field named ID is the primary key by gorm convention.
func isPrimaryKeyField(field reflect.StructField) bool {
	for _, part := range strings.Split(field.Tag.Get("bun"), ",")[1:] {
		if strings.TrimSpace(part) == "pk" {
			return true
		}
	}
	for _, part := range strings.Split(field.Tag.Get("gorm"), ";") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "primarykey", "primary_key":
			return true
		}
	}
	return false
}

// ExtractColumnFromGormTag extracts the column name from a gorm tag
// Example: "column:id;primaryKey" -> "id"
func ExtractColumnFromGormTag(tag string) string {
	parts := strings.Split(tag, ";")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if colName, found := strings.CutPrefix(part, "column:"); found {
			return colName
		}
	}
	return ""
}

// ExtractColumnFromBunTag extracts the column name from a bun tag
// Example: "id,pk" -> "id"
// Example: ",pk" -> "" (will fall back to the field name)
func ExtractColumnFromBunTag(tag string) string {
	lower := strings.ToLower(tag)
	if strings.HasPrefix(lower, "table:") || strings.HasPrefix(lower, "rel:") || strings.HasPrefix(lower, "join:") {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// ExtractTableFromBunTag reads "table:posts,alias:p" style tags from bun.BaseModel
func ExtractTableFromBunTag(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		if table, found := strings.CutPrefix(strings.TrimSpace(part), "table:"); found {
			return table
		}
	}
	return ""
}

// isBunFieldScanOnly checks if a bun tag indicates the field is scan-only
// Example: "column_name,scanonly" -> true
func isBunFieldScanOnly(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts {
		if strings.TrimSpace(part) == "scanonly" {
			return true
		}
	}
	return false
}

// isGormFieldReadOnly checks if a gorm tag indicates the field is read-only
// Examples:
//   - "<-:false" -> true (no writes allowed)
//   - "->" -> true (read-only, common pattern)
//   - "column:name;->" -> true
//   - "<-:create" -> false (writes allowed on create)
func isGormFieldReadOnly(tag string) bool {
	parts := strings.Split(tag, ";")
	for _, part := range parts {
		part = strings.TrimSpace(part)

		if part == "->" {
			return true
		}

		if value, found := strings.CutPrefix(part, "<-:"); found {
			if value == "false" {
				return true
			}
		}
	}
	return false
}

// ToSnakeCase converts a Go identifier to the column naming used by gorm and bun.
// Example: "UserID" -> "user_id"
func ToSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
