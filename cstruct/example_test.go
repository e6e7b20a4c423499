package cstruct_test

import (
	"fmt"
	"log"

	"github.com/robert-malhotra/go-cstruct/cstruct"
)

func Example() {
	s, err := cstruct.New(cstruct.Layout{
		cstruct.M("foo", "uint8"),
		cstruct.M("bar", []any{"int8", 127}),
		cstruct.M("baz", cstruct.Layout{
			cstruct.M("qux", []any{"uint16", 65535}),
		}),
	})
	if err != nil {
		log.Fatal(err)
	}

	buf, err := s.Write(map[string]any{"foo": 255, "baz": map[string]any{"qux": 0}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("% x\n", buf)

	values, err := s.Read(buf, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(values)
	// Output:
	// ff 7f 00 00
	// map[bar:127 baz:map[qux:0] foo:255]
}

func ExampleStruct_Read_selfDescribing() {
	point := cstruct.MustNew(cstruct.Layout{
		cstruct.M("x", "int16"),
		cstruct.M("y", "int16"),
	})
	path := cstruct.MustNew(cstruct.Layout{
		cstruct.M("name", []any{"uint8", "", "uint8"}),
		cstruct.M("points", []any{point, []any{}, "uint16"}),
	})

	buf, err := path.Write(map[string]any{
		"name":   "tri",
		"points": []any{map[string]any{"x": 1, "y": 2}, map[string]any{"x": -3, "y": 4}},
	})
	if err != nil {
		log.Fatal(err)
	}

	values, err := path.Read(buf, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(buf), values["name"], values["points"])
	// Output:
	// 14 tri [map[x:1 y:2] map[x:-3 y:4]]
}
