package block

import (
	"fmt"
	"time"
)

// Type представляет тип блока. Нулевое значение означает воздух.
type Type uint8

// Константы типов блоков
const (
	Air Type = iota
	Dirt
	Grass
	Stone
	Sand
	SnowyDirt

	typeCount // всегда последний
)

// Properties описывает свойства типа блока
type Properties struct {
	Name      string        // Имя в путях текстур и в сохранениях
	BreakTime time.Duration // Время разрушения при непрерывном воздействии
}

var registry = map[Type]Properties{
	Air:       {Name: "air"},
	Dirt:      {Name: "dirt", BreakTime: 750 * time.Millisecond},
	Grass:     {Name: "grass", BreakTime: 900 * time.Millisecond},
	Stone:     {Name: "stone", BreakTime: 2 * time.Second},
	Sand:      {Name: "sand", BreakTime: 600 * time.Millisecond},
	SnowyDirt: {Name: "snowy_dirt", BreakTime: 900 * time.Millisecond},
}

// Register переопределяет свойства типа блока (например, время разрушения из конфига).
// Вызывать до запуска симуляции.
func Register(t Type, props Properties) {
	registry[t] = props
}

// Get возвращает свойства для указанного типа
func Get(t Type) (Properties, bool) {
	props, exists := registry[t]
	return props, exists
}

// IsValid проверяет, является ли тип допустимым
func IsValid(t Type) bool {
	_, exists := registry[t]
	return exists && t < typeCount
}

// All возвращает все зарегистрированные типы кроме воздуха
func All() []Type {
	types := make([]Type, 0, typeCount-1)
	for t := Dirt; t < typeCount; t++ {
		types = append(types, t)
	}
	return types
}

// BreakTime возвращает время разрушения блока. Для неизвестных типов 1 секунда.
func (t Type) BreakTime() time.Duration {
	props, ok := registry[t]
	if !ok || props.BreakTime <= 0 {
		return time.Second
	}
	return props.BreakTime
}

// String возвращает имя типа
func (t Type) String() string {
	if props, ok := registry[t]; ok {
		return props.Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseType находит тип по имени
func ParseType(name string) (Type, error) {
	for t, props := range registry {
		if props.Name == name {
			return t, nil
		}
	}
	return Air, fmt.Errorf("неизвестный тип блока %q", name)
}

// MarshalText кодирует тип по имени (используется в JSON сохранений)
func (t Type) MarshalText() ([]byte, error) {
	if !IsValid(t) {
		return nil, fmt.Errorf("недопустимый тип блока %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText декодирует тип по имени
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
