package patch

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// document is the JSON object form of a value under patch.
type document struct {
	raw    []byte
	fields map[string]any
}

func newDocument[T any](v T) (*document, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current state: %w", err)
	}
	var fields map[string]any
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("current state is not a JSON object: %w", err)
	}
	return &document{raw: raw, fields: fields}, nil
}

// Has reports whether pointer resolves to a member. Only objects are
// traversed; array indexes never resolve.
func (d *document) Has(pointer string) bool {
	if pointer == "" {
		return true
	}
	if !strings.HasPrefix(pointer, "/") {
		return false
	}
	node := d.fields
	tokens := strings.Split(pointer[1:], "/")
	for i, token := range tokens {
		value, ok := node[unescapeToken(token)]
		if !ok {
			return false
		}
		if i == len(tokens)-1 {
			return true
		}
		if node, ok = value.(map[string]any); !ok {
			return false
		}
	}
	return false
}

// normalize turns replace of an absent member into add and drops removals
// of absent members, so a write works on a sparse record.
func (d *document) normalize(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		present := d.Has(op.Path)
		switch {
		case op.Op == OperationRemove && !present:
			continue
		case op.Op == OperationReplace && !present:
			op.Op = OperationAdd
		}
		out = append(out, op)
	}
	return out
}

// ApplyRFC6902 applies ops to the JSON form of current and decodes the
// result back into T. On error current is returned as is.
func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	if len(ops) == 0 {
		return current, nil
	}
	doc, err := newDocument(current)
	if err != nil {
		return current, err
	}

	patchJSON, err := sonic.Marshal(doc.normalize(ops))
	if err != nil {
		return current, fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return current, fmt.Errorf("failed to decode patch: %w", err)
	}
	modified, err := p.Apply(doc.raw)
	if err != nil {
		return current, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modified, &result); err != nil {
		return current, fmt.Errorf("patched value does not decode into %T: %w", result, err)
	}
	return result, nil
}
