package filter

import (
	"reflect"
	"testing"
)

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(testJobs())

	want := Options{
		Departments: []string{"Design", "Engineering"},
		Locations:   []string{"New York", "San Francisco"},
		Industries:  []string{"AI", "Fintech"},
		Investors:   []string{"Andreessen Horowitz", "Sequoia Capital"},
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("OptionsFor =\n %+v\nwant\n %+v", opts, want)
	}
}

func TestOptionsFor_Empty(t *testing.T) {
	opts := OptionsFor(nil)
	if opts.Departments == nil || len(opts.Departments) != 0 {
		t.Errorf("expected empty non-nil departments, got %#v", opts.Departments)
	}
}
