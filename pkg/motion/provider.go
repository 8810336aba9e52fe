package motion

// Sample is a single accelerometer reading, in g along each axis.
type Sample struct {
	X float64
	Y float64
	Z float64
}

// Provider interface defines the methods for accelerometer providers.
type Provider interface {
	Read() (Sample, error)
	Close() error
}
