package ui

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

func TestTrustColorEndpoints(t *testing.T) {
	testcases := map[float64]string{
		-10: "#e53935",
		0:   "#e53935",
		100: "#04b575",
		250: "#04b575",
	}
	for score, expected := range testcases {
		got, err := colorful.Hex(string(TrustColor(score)))
		if err != nil {
			t.Fatalf("TrustColor(%v) returned an invalid color: %v", score, err)
		}
		want, _ := colorful.Hex(expected)
		// the Luv blend may round a channel by one step
		if d := got.DistanceRgb(want); d > 0.01 {
			t.Errorf("TrustColor(%v) = %s, expected about %s", score, got.Hex(), expected)
		}
	}
}

func TestTrustColorIsAmberInTheMiddle(t *testing.T) {
	got, _ := colorful.Hex(string(TrustColor(50)))
	want, _ := colorful.Hex("#FFC107")
	if d := got.DistanceRgb(want); d > 0.01 {
		t.Errorf("TrustColor(50) = %s, expected about #ffc107", got.Hex())
	}
}

func TestSnackbarStyleFallsBackToInfo(t *testing.T) {
	want := SnackbarStyle(v1.SnackbarInfo).Render("x")
	if got := SnackbarStyle("unknown").Render("x"); got != want {
		t.Fatalf("expected the info style for unknown kinds")
	}
}
