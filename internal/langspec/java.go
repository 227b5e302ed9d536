package langspec

func init() {
	Register(&Spec{
		Language:          Java,
		FunctionNodeTypes: []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes:    []string{"class_declaration", "interface_declaration"},
		CallNodeTypes:     []string{"method_invocation"},
		ImportNodeTypes:   []string{"import_declaration"},
		InheritFields:     []string{"superclass", "interfaces"},
		NameField:         "name",
		BodyField:         "body",
		DocstringLeading:  true,
		Builtins: map[string]bool{
			"System.out.println": true, "System.out.print": true,
			"toString": true, "equals": true, "hashCode": true,
			"getClass": true, "String.valueOf": true,
		},
	})
}
