package langspec

func init() {
	Register(&Spec{
		Language:          Python,
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		CallNodeTypes:     []string{"call"},
		ImportNodeTypes:   []string{"import_statement", "import_from_statement"},
		InheritFields:     []string{"superclasses"},
		NameField:         "name",
		BodyField:         "body",
		DocstringLeading:  false,
		Builtins: map[string]bool{
			"print": true, "len": true, "range": true, "isinstance": true,
			"super": true, "str": true, "int": true, "float": true,
			"list": true, "dict": true, "set": true, "tuple": true,
			"open": true, "enumerate": true, "zip": true, "map": true,
			"filter": true, "sorted": true, "getattr": true, "setattr": true,
			"hasattr": true, "type": true,
		},
	})
}
