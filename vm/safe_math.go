package vm

import "math"

// safe_math.go 金库计数器的 u64 运算

// SaturatingAdd a + b，溢出时停在 MaxUint64
func SaturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SaturatingSub a - b，不足时为 0
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
