package langspec

func init() {
	Register(&Spec{
		Language:          Cpp,
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_specifier", "struct_specifier"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"preproc_include"},
		InheritFields:     []string{"base_class_clause"},
		NameField:         "declarator",
		BodyField:         "body",
		DocstringLeading:  true,
		Builtins: map[string]bool{
			"printf": true, "sprintf": true, "malloc": true, "free": true,
			"std::cout": true, "std::endl": true, "static_cast": true,
			"dynamic_cast": true, "sizeof": true,
		},
	})
}
