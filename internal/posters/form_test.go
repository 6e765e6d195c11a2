package posters

import (
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func testForm() *PosterForm {
	media := []MediaProperty{{ID: 1, Name: "Solaris Pictures"}, {ID: 2, Name: "Northwind Games"}}
	tags := []Tag{{ID: 1, Name: "movie"}, {ID: 2, Name: "limited"}, {ID: 3, Name: "vintage"}}
	return NewPosterForm(media, tags)
}

func TestPosterFormParseValid(t *testing.T) {
	values := url.Values{
		"title":             {"Dune Part Two"},
		"cost":              {"2500"},
		"description":       {"  IMAX release poster  "},
		"date":              {"2024-03-01"},
		"stock":             {"12"},
		"height":            {"91"},
		"width":             {"61"},
		"media_property_id": {"1"},
		"tags":              {"3,1"},
	}

	input, errs := testForm().Parse(values)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if input.Title == nil || *input.Title != "Dune Part Two" {
		t.Errorf("title = %v, want Dune Part Two", input.Title)
	}
	if input.Cost == nil || *input.Cost != 2500 {
		t.Errorf("cost = %v, want 2500", input.Cost)
	}
	if input.Description == nil || *input.Description != "IMAX release poster" {
		t.Errorf("description not trimmed: %v", input.Description)
	}
	if input.Date == nil || input.Date.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("date = %v, want 2024-03-01", input.Date)
	}
	if input.MediaPropertyID == nil || *input.MediaPropertyID != 1 {
		t.Errorf("media_property_id = %v, want 1", input.MediaPropertyID)
	}
	if !reflect.DeepEqual(input.TagIDs, []int64{1, 3}) {
		t.Errorf("tag ids = %v, want sorted [1 3]", input.TagIDs)
	}
}

func TestPosterFormParseAllFieldsOptional(t *testing.T) {
	input, errs := testForm().Parse(url.Values{})
	if errs != nil {
		t.Fatalf("empty submission should validate, got %v", errs)
	}
	if input.Title != nil || input.Cost != nil || input.Description != nil ||
		input.Date != nil || input.Stock != nil || input.Height != nil ||
		input.Width != nil || input.MediaPropertyID != nil {
		t.Errorf("empty fields should all be nil: %+v", input)
	}
	if len(input.TagIDs) != 0 {
		t.Errorf("tag ids = %v, want empty set", input.TagIDs)
	}
}

func TestPosterFormParseFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantField string
	}{
		{"negative cost", url.Values{"cost": {"-5"}}, "cost"},
		{"non-numeric cost", url.Values{"cost": {"cheap"}}, "cost"},
		{"stock over smallint", url.Values{"stock": {"70000"}}, "stock"},
		{"height over smallint", url.Values{"height": {"65536"}}, "height"},
		{"bad date format", url.Values{"date": {"01/03/2024"}}, "date"},
		{"impossible date", url.Values{"date": {"2024-13-40"}}, "date"},
		{"title too long", url.Values{"title": {strings.Repeat("x", 101)}}, "title"},
		{"unknown media property", url.Values{"media_property_id": {"99"}}, "media_property_id"},
		{"non-numeric media property", url.Values{"media_property_id": {"abc"}}, "media_property_id"},
		{"unknown tag id", url.Values{"tags": {"1,99"}}, "tags"},
		{"malformed tag id", url.Values{"tags": {"1,banana"}}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := testForm().Parse(tt.values)
			if input != nil {
				t.Errorf("invalid submission returned input: %+v", input)
			}
			if errs[tt.wantField] == "" {
				t.Errorf("expected error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestPosterFormParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty string is empty set", "", nil},
		{"whitespace only is empty set", "   ", nil},
		{"duplicates collapse", "2,2,1", []int64{1, 2}},
		{"spaces around tokens", " 1 , 3 ", []int64{1, 3}},
		{"trailing comma tolerated", "1,2,", []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := testForm().Parse(url.Values{"tags": {tt.raw}})
			if errs != nil {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if !reflect.DeepEqual(input.TagIDs, tt.want) {
				t.Errorf("tag ids = %v, want %v", input.TagIDs, tt.want)
			}
		})
	}
}

// A submission with several bad fields reports every one of them in a
// single pass, so the user fixes the form once.
func TestPosterFormParseCollectsAllErrors(t *testing.T) {
	values := url.Values{
		"cost":  {"-1"},
		"stock": {"nope"},
		"date":  {"yesterday"},
	}
	_, errs := testForm().Parse(values)
	for _, field := range []string{"cost", "stock", "date"} {
		if errs[field] == "" {
			t.Errorf("missing error for %q: %v", field, errs)
		}
	}
}
