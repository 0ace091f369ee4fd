package project

import (
	"path"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// Schema 反射生成工程文件的 JSON Schema
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		Namer:                     schemaName,
	}
	schema := reflector.Reflect(&File{})
	schema.Title = "Omagari Project"
	schema.Description = "Particle effect project authored in the editor (" + Suffix + ")"
	return schema
}

// schemaName 为不同包中同名的 Record 类型生成唯一定义名，如 ExprRecord
func schemaName(t reflect.Type) string {
	pkg := path.Base(t.PkgPath())
	if pkg == "" || pkg == "." {
		return t.Name()
	}
	prefix := strings.ToUpper(pkg[:1]) + pkg[1:]
	if strings.HasPrefix(t.Name(), prefix) {
		return t.Name()
	}
	return prefix + t.Name()
}
