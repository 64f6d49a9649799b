// optional описывает поле частичного JSON-апдейта с тремя состояниями:
// ключ отсутствует, ключ присутствует со значением null, ключ присутствует со значением.
//
// encoding/json вызывает UnmarshalJSON только для ключей, которые есть в документе
// (в том числе для литерала null), поэтому Present однозначно отвечает на вопрос
// «был ли ключ в payload».
package optional

import (
	"bytes"
	"encoding/json"
)

var nullLiteral = []byte("null")

// Field - значение ключа в partial-payload.
type Field[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Of возвращает присутствующее поле со значением v.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Null возвращает присутствующее поле с явным null.
func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// HasValue - ключ присутствует и значение не null.
func (f Field[T]) HasValue() bool {
	return f.Present && !f.Null
}

// UnmarshalJSON помечает поле присутствующим и декодирует значение.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true

	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		var zero T
		f.Value = zero
		f.Null = true

		return nil
	}

	f.Null = false

	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON кодирует null для явного null, иначе значение.
// Отсутствие ключа выразить нельзя: это забота вызывающего (omitempty не работает для структур).
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return nullLiteral, nil
	}

	return json.Marshal(f.Value)
}
