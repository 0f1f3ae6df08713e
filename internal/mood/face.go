package mood

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ErrInvalidExpressions is returned when an expression vector cannot be
// decoded from JSON.
var ErrInvalidExpressions = errors.New("invalid expression vector")

// Expression is a single facial expression with its detector confidence.
type Expression struct {
	Name       string
	Confidence float64
}

// ExpressionVector is an ordered list of expression confidences. Order matters:
// when two expressions share the maximum confidence the earlier one wins.
type ExpressionVector []Expression

// expressionMoods maps detector expression names onto labels.
var expressionMoods = map[string]Label{
	"happy":     Happy,
	"sad":       Sad,
	"angry":     Angry,
	"neutral":   Calm,
	"surprised": Energetic,
	"fearful":   Relaxed,
	"disgusted": Angry,
}

// Dominant returns the first expression with the highest confidence.
// It returns false for an empty vector.
func (v ExpressionVector) Dominant() (Expression, bool) {
	if len(v) == 0 {
		return Expression{}, false
	}
	best := v[0]
	for _, e := range v[1:] {
		if e.Confidence > best.Confidence {
			best = e
		}
	}
	return best, true
}

// ClassifyFace maps the dominant expression of v onto a label. An empty vector
// or a dominant expression with no mapping yields DefaultLabel.
func ClassifyFace(v ExpressionVector) Label {
	dominant, ok := v.Dominant()
	if !ok {
		return DefaultLabel
	}
	if l, ok := expressionMoods[dominant.Name]; ok {
		return l
	}
	return DefaultLabel
}

// UnmarshalJSON decodes a JSON object of name -> confidence, keeping the
// document's key order.
func (v *ExpressionVector) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed json", ErrInvalidExpressions)
	}

	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*v = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("%w: expected an object", ErrInvalidExpressions)
	}

	out := ExpressionVector{}
	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			decodeErr = fmt.Errorf("%w: confidence for %q is not a number", ErrInvalidExpressions, key.String())
			return false
		}
		out = append(out, Expression{Name: key.String(), Confidence: value.Float()})
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	*v = out
	return nil
}

// MarshalJSON encodes v as a JSON object in vector order.
func (v ExpressionVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, fmt.Errorf("encoding expression name: %w", err)
		}
		confidence, err := json.Marshal(e.Confidence)
		if err != nil {
			return nil, fmt.Errorf("encoding confidence for %q: %w", e.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(confidence)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
