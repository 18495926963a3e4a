// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package slice complements the standard [slices] package with mapping helpers
for request-to-domain conversion.

Results are never nil, so converted lists encode as [] rather than null.
*/
package slice

// Map applies transform to every element, preserving order.
func Map[T any, U any](input []T, transform func(T) U) []U {
	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}
