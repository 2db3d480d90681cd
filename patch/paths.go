package patch

import (
	"reflect"
	"strings"
)

// FieldPaths lists the JSON pointers of every exported field of T,
// descending into nested structs.
func FieldPaths[T any]() []string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return []string{}
	}
	paths := make([]string, 0, typ.NumField())
	collectPaths(typ, "", &paths, map[reflect.Type]bool{})
	return paths
}

// PathSet is FieldPaths as a lookup set.
func PathSet[T any]() map[string]bool {
	set := map[string]bool{}
	for _, p := range FieldPaths[T]() {
		set[p] = true
	}
	return set
}

func collectPaths(typ reflect.Type, prefix string, paths *[]string, visited map[reflect.Type]bool) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || visited[typ] {
		return
	}
	visited[typ] = true
	defer delete(visited, typ)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		if name == "-" {
			continue
		}
		fieldPath := prefix + "/" + escapeToken(name)
		*paths = append(*paths, fieldPath)
		collectPaths(field.Type, fieldPath, paths, visited)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapeToken(token string) string {
	return tokenEscaper.Replace(token)
}

func unescapeToken(token string) string {
	return tokenUnescaper.Replace(token)
}
