package langspec

func init() {
	Register(&Spec{
		Language:          TypeScript,
		FunctionNodeTypes: []string{"function_declaration", "method_definition", "arrow_function"},
		ClassNodeTypes:    []string{"class_declaration", "interface_declaration"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import_statement"},
		InheritFields:     []string{"heritage"},
		NameField:         "name",
		BodyField:         "body",
		DocstringLeading:  true,
		Builtins: map[string]bool{
			"require": true, "console.log": true, "parseInt": true,
			"parseFloat": true, "JSON.stringify": true, "JSON.parse": true,
			"Array.isArray": true, "Object.keys": true, "Object.values": true,
			"Object.entries": true, "Object.assign": true, "setTimeout": true,
			"setInterval": true, "Promise.resolve": true, "Promise.all": true,
		},
	})
}
