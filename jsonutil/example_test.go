package jsonutil_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/drblury/dishweaver/jsonutil"
)

func Example() {
	type dish struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"precio"`
	}

	pizza := dish{ID: 1, Name: "Pizza Margherita", Price: 12.99}

	data, _ := jsonutil.Marshal(pizza)
	fmt.Println(string(data))

	var decoded dish
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.Price)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, pizza)

	var streamed dish
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.Name)

	// Output:
	// {"id":1,"name":"Pizza Margherita","precio":12.99}
	// 12.99
	// Pizza Margherita
}

func ExampleMarshalIndent() {
	payload := struct {
		Service string   `json:"service"`
		Tags    []string `json:"tags"`
	}{
		Service: "dishes",
		Tags:    []string{"menu", "kitchen"},
	}

	data, err := jsonutil.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}

	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "service": "dishes",
	//   "tags": [
	//     "menu",
	//     "kitchen"
	//   ]
	// }
}

func ExampleDecodeNumber() {
	var raw map[string]any
	if err := jsonutil.DecodeNumber(strings.NewReader(`{"id":9007199254740993}`), &raw); err != nil {
		fmt.Println("decode error:", err)
		return
	}

	n, ok := raw["id"].(json.Number)
	fmt.Println(ok, n.String())

	// Output:
	// true 9007199254740993
}

func ExampleDecodeNumberStrict() {
	var v any
	fmt.Println(jsonutil.DecodeNumberStrict(strings.NewReader(`{"id":1} `), &v))
	fmt.Println(jsonutil.DecodeNumberStrict(strings.NewReader(`{"id":1} {"id":2}`), &v))
	// Output:
	// <nil>
	// unexpected data after top-level value
}
