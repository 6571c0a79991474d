package report

// Fields lists the header aliases tried, in order, for each report column
type Fields struct {
	Driver      []string
	Date        []string
	Amount      []string
	Client      []string
	Origin      []string
	Destination []string
}

// DefaultFields returns the aliases used by the Spanish trip sheets
func DefaultFields() Fields {
	return Fields{
		Driver:      []string{"Conductor", "Chofer", "Chófer", "Driver"},
		Date:        []string{"F.Carga", "Fecha Carga", "Fecha", "Date"},
		Amount:      []string{"Precio", "Importe", "Price", "Amount"},
		Client:      []string{"Cliente", "Client"},
		Origin:      []string{"Origen", "Origin"},
		Destination: []string{"Destino", "Destination"},
	}
}

// UndatedPolicy decides whether records without a usable date are shown
type UndatedPolicy int

const (
	// UndatedHidden drops undated records from every view
	UndatedHidden UndatedPolicy = iota
	// UndatedVisibleUnfiltered shows undated records while no month or
	// week filter is active
	UndatedVisibleUnfiltered
)

func (p UndatedPolicy) String() string {
	if p == UndatedVisibleUnfiltered {
		return "visible_unfiltered"
	}
	return "hidden"
}

// Options configures report derivation
type Options struct {
	Fields  Fields
	Undated UndatedPolicy
}

// DefaultOptions returns the default field aliases with undated records hidden
func DefaultOptions() Options {
	return Options{Fields: DefaultFields(), Undated: UndatedHidden}
}
