package schedule

import "testing"

func TestSplitActivityLocationSeparators(t *testing.T) {
	cases := []struct {
		input        string
		wantActivity string
		wantLocation string
	}{
		{"Swim familiarisation at Preston Beach", "Swim familiarisation", "Preston Beach"},
		{"Race briefing - Town Hall", "Race briefing", "Town Hall"},
		{"Athlete check-in: Event Village", "Athlete check-in", "Event Village"},
		{"Bike check-in Lakeside Car Park", "Bike check-in", "Lakeside Car Park"},
	}
	for _, tc := range cases {
		activity, location := splitActivityLocation(tc.input)
		if activity != tc.wantActivity {
			t.Errorf("splitActivityLocation(%q) activity = %q, want %q", tc.input, activity, tc.wantActivity)
		}
		if location == nil {
			t.Errorf("splitActivityLocation(%q) location = nil, want %q", tc.input, tc.wantLocation)
			continue
		}
		if *location != tc.wantLocation {
			t.Errorf("splitActivityLocation(%q) location = %q, want %q", tc.input, *location, tc.wantLocation)
		}
	}
}

func TestSplitActivityLocationKeepsPlainActivities(t *testing.T) {
	for _, input := range []string{
		"Registration Opens",
		"Swim Start",
		"Awards ceremony at tbc",
	} {
		activity, location := splitActivityLocation(input)
		if location != nil {
			t.Errorf("splitActivityLocation(%q) found location %q, want none", input, *location)
		}
		if activity == "" {
			t.Errorf("splitActivityLocation(%q) lost the activity text", input)
		}
	}
}

func TestCleanActivityTextStripsBoilerplate(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Bike course opens * see notice board", "Bike course opens"},
		{"Run briefing 14 t100triathlon.com", "Run briefing"},
		{"Swim start waves Your wave start time will be emailed", "Swim start waves"},
		{"Expo opens 12", "Expo opens"},
		{"  spaced   out   text  ", "spaced out text"},
	}
	for _, tc := range cases {
		if got := cleanActivityText(tc.input); got != tc.want {
			t.Errorf("cleanActivityText(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCleanLocationTextFiltersNoise(t *testing.T) {
	if got := cleanLocationText("TBC"); got != nil {
		t.Errorf("placeholder location kept: %q", *got)
	}
	if got := cleanLocationText("12"); got != nil {
		t.Errorf("numeric location kept: %q", *got)
	}
	got := cleanLocationText(" Palace Pier -")
	if got == nil || *got != "Palace Pier" {
		t.Errorf("cleanLocationText trimmed badly: %v", got)
	}
}

func TestLooksLikeLocationTextWordCap(t *testing.T) {
	long := "one two three four five six seven eight nine ten eleven twelve thirteen"
	if looksLikeLocationText(long) {
		t.Error("over-long phrase accepted as location")
	}
	if !looksLikeLocationText("Harbour Marina") {
		t.Error("plausible location rejected")
	}
}
