package markup

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Values are encoded as single-key JSON objects naming their kind:
//
//	{"str": "a.png"}  {"num": 200}  {"bool": true}  {"raw": "onClick"}
//	{"arr": [{"num": 1}]}  {"obj": [{"key": "padding", "val": {"num": 10}}]}

func (v Str) MarshalJSON() ([]byte, error)  { return json.Marshal(map[string]string{"str": string(v)}) }
func (v Num) MarshalJSON() ([]byte, error)  { return json.Marshal(map[string]float64{"num": float64(v)}) }
func (v Bool) MarshalJSON() ([]byte, error) { return json.Marshal(map[string]bool{"bool": bool(v)}) }
func (v Raw) MarshalJSON() ([]byte, error)  { return json.Marshal(map[string]string{"raw": string(v)}) }

func (v Arr) MarshalJSON() ([]byte, error) {
	elems := []Value(v)
	if elems == nil {
		elems = []Value{}
	}
	return json.Marshal(map[string][]Value{"arr": elems})
}

type jsonField struct {
	Key string `json:"key"`
	Val Value  `json:"val"`
}

func (v Obj) MarshalJSON() ([]byte, error) {
	fields := make([]jsonField, len(v))
	for i, f := range v {
		fields[i] = jsonField(f)
	}
	return json.Marshal(map[string][]jsonField{"obj": fields})
}

var errValueKind = errors.New("value must be an object with exactly one of str, num, bool, obj, arr, raw")

// UnmarshalValue decodes a Value from its JSON encoding.
func UnmarshalValue(data []byte) (Value, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) != 1 {
		return nil, errValueKind
	}
	for k, raw := range m {
		switch k {
		case "str":
			var s string
			err := json.Unmarshal(raw, &s)
			return Str(s), err
		case "num":
			var f float64
			err := json.Unmarshal(raw, &f)
			return Num(f), err
		case "bool":
			var b bool
			err := json.Unmarshal(raw, &b)
			return Bool(b), err
		case "raw":
			var s string
			err := json.Unmarshal(raw, &s)
			return Raw(s), err
		case "arr":
			var elems []json.RawMessage
			if err := json.Unmarshal(raw, &elems); err != nil {
				return nil, err
			}
			arr := make(Arr, len(elems))
			for i, e := range elems {
				v, err := UnmarshalValue(e)
				if err != nil {
					return nil, fmt.Errorf("arr[%d]: %w", i, err)
				}
				arr[i] = v
			}
			return arr, nil
		case "obj":
			var fields []struct {
				Key string          `json:"key"`
				Val json.RawMessage `json:"val"`
			}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, err
			}
			obj := make(Obj, len(fields))
			for i, f := range fields {
				v, err := UnmarshalValue(f.Val)
				if err != nil {
					return nil, fmt.Errorf("obj.%s: %w", f.Key, err)
				}
				obj[i] = Field{Key: f.Key, Val: v}
			}
			return obj, nil
		}
	}
	return nil, errValueKind
}

type jsonAttr struct {
	Key string          `json:"key"`
	Val json.RawMessage `json:"val"`
}

type jsonNode struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	DisplayName string     `json:"displayName,omitempty"`
	Category    string     `json:"category,omitempty"`
	Attrs       []jsonAttr `json:"attrs,omitempty"`
	Children    []*Node    `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	jn := jsonNode{
		ID:          n.ID,
		Type:        n.Type,
		DisplayName: n.DisplayName,
		Category:    n.Category,
		Children:    n.Children,
	}
	for _, a := range n.Attr {
		val, err := json.Marshal(a.Val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Key, err)
		}
		jn.Attrs = append(jn.Attrs, jsonAttr{Key: a.Key, Val: val})
	}
	return json.Marshal(jn)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var jn jsonNode
	if err := json.Unmarshal(data, &jn); err != nil {
		return err
	}
	if jn.ID == "" {
		return errors.New("node id is required")
	}
	*n = Node{
		ID:          jn.ID,
		Type:        jn.Type,
		DisplayName: jn.DisplayName,
		Category:    jn.Category,
		Children:    jn.Children,
	}
	for _, a := range jn.Attrs {
		v, err := UnmarshalValue(a.Val)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", a.Key, err)
		}
		n.Attr.Set(a.Key, v)
	}
	return nil
}
