// Package ops holds the plain helper functions the bridge host calls directly.
package ops

import "fmt"

// PI is exported for callers of the bridge; nothing in this package reads it.
const PI = 3.14159

// Number covers the built-in numeric kinds the helpers accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// AddNumbers adds two numbers and returns the result.
func AddNumbers[T Number](a, b T) T {
	return a + b
}

// MultiplyNumbers multiplies two numbers and returns the result.
func MultiplyNumbers[T Number](a, b T) T {
	return a * b
}

// GetGreeting returns a personalized greeting.
func GetGreeting(name string) string {
	return fmt.Sprintf("Hello, %s! Welcome to Python.NET integration.", name)
}
