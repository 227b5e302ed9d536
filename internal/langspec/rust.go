package langspec

func init() {
	Register(&Spec{
		Language:          Rust,
		FunctionNodeTypes: []string{"function_item"},
		ClassNodeTypes:    []string{"struct_item", "trait_item", "impl_item"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"use_declaration"},
		InheritFields:     []string{"trait"},
		NameField:         "name",
		BodyField:         "body",
		DocstringLeading:  true,
		Builtins: map[string]bool{
			"println!": true, "print!": true, "vec!": true, "format!": true,
			"panic!": true, "assert!": true, "assert_eq!": true, "unwrap": true,
			"expect": true, "clone": true, "into": true, "from": true,
		},
	})
}
