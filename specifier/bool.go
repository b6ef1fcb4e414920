package specifier

// Boolean is a one-bit field. Raw 0 is false and raw 1 is true.
type Boolean struct{}

var _ Specifier[bool] = Boolean{}

// Bool returns the boolean specifier.
func Bool() Boolean {
	return Boolean{}
}

func (Boolean) Bits() int            { return 1 }
func (Boolean) Kind() Kind           { return KindBool }
func (Boolean) Container() Container { return Container8 }
func (Boolean) TypeName() string     { return "bool" }

func (Boolean) Encode(v bool) uint64 {
	if v {
		return 1
	}

	return 0
}

// Decode looks at the lowest bit only.
func (Boolean) Decode(raw uint64) (bool, error) {
	return raw&1 == 1, nil
}

func (Boolean) CheckRaw(uint64) error { return nil }

func (Boolean) FormatRaw(raw uint64) string {
	if raw&1 == 1 {
		return "true"
	}

	return "false"
}
