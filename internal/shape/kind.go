package shape

import "fmt"

// Kind identifies a shape variant. The set is closed: behaviour is
// dispatched on the kind, never on which fields happen to be set.
type Kind uint8

const (
	KindPoint Kind = iota + 1
	KindLine
	KindRectangle
	KindBox
	KindCircle
	KindEllipse
	KindPolygon
	KindPath
	KindText
	KindCompound
)

var kindNames = map[Kind]string{
	KindPoint:     "point",
	KindLine:      "line",
	KindRectangle: "rectangle",
	KindBox:       "box",
	KindCircle:    "circle",
	KindEllipse:   "ellipse",
	KindPolygon:   "polygon",
	KindPath:      "path",
	KindText:      "text",
	KindCompound:  "compound",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, s := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrConfiguration, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: invalid kind %d", ErrConfiguration, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
