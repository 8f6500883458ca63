package utils

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			// if not exists in map, append it, otherwise do nothing
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// HasDuplicates reports whether the slice contains any repeated element.
func HasDuplicates[T comparable](slice []T) bool {
	seen := make(map[T]bool, len(slice))
	for _, elm := range slice {
		if seen[elm] {
			return true
		}
		seen[elm] = true
	}
	return false
}

// DiffSlice returns the elements of a that are not in b, preserving a's order.
func DiffSlice[T comparable](a []T, b []T) []T {
	exclude := make(map[T]bool, len(b))
	for _, elm := range b {
		exclude[elm] = true
	}
	result := make([]T, 0, len(a))
	for _, elm := range a {
		if !exclude[elm] {
			result = append(result, elm)
		}
	}
	return result
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}
