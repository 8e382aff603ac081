package handler_test

import (
	"strings"
	"testing"

	"showdownbot/src-server/discord"
)

func TestSignup(t *testing.T) {
	as := newTestAppState(t)
	signup := func(userID, code string) string {
		return dispatch(t, as, discord.FakeCommand(userID, "signup", "", discord.StringOpt("code", code))).LastContent()
	}

	if got := manage(t, as, "admin", "signup-create early 2"); !strings.Contains(got, `Code "EARLY" saved with quota 2 (0 used).`) {
		t.Fatalf("signup-create = %q", got)
	}

	tests := []struct {
		user string
		code string
		want string
	}{
		{"1", "nope", ":x: Code not found"},
		{"1", "early", `:white_check_mark: Successfully registered using the code "EARLY". Congratulations!`},
		{"2", " Early ", `:white_check_mark: Successfully registered using the code "EARLY". Congratulations!`},
		{"3", "EARLY", ":pleading_face: Sorry, the registration limit for the code \"EARLY\" has been reached.\nYou have been put on the waiting list."},
		{"1", "early", ":x: You already signed up with this registration code.\nYou already got a ticket."},
		{"3", "early", ":x: You already signed up with this registration code.\nYou are on a waitlist for this code."},
	}
	for _, tt := range tests {
		if got := signup(tt.user, tt.code); got != tt.want {
			t.Errorf("signup(%s, %q) = %q, want %q", tt.user, tt.code, got, tt.want)
		}
	}

	stats := manage(t, as, "admin", "signup-stats early")
	for _, line := range []string{"Code: EARLY", "Tickets: 2/2", "Waitlist: 1", "Attempts: 5"} {
		if !strings.Contains(stats, line) {
			t.Errorf("signup-stats is missing %q:\n%s", line, stats)
		}
	}
}

func TestSignupNotYetOpen(t *testing.T) {
	as := newTestAppState(t)
	if got := manage(t, as, "admin", "signup-create later 10 tomorrow"); !strings.Contains(got, "Registration opens at") {
		t.Fatalf("signup-create = %q", got)
	}
	got := dispatch(t, as, discord.FakeCommand("1", "signup", "", discord.StringOpt("code", "later"))).LastContent()
	if !strings.HasPrefix(got, ":x: Registration is not open yet. Registration will open at <t:") {
		t.Fatalf("got %q", got)
	}
}

func TestSignupCreateRejectsBadInput(t *testing.T) {
	as := newTestAppState(t)
	for _, line := range []string{"signup-create", "signup-create X", "signup-create X many", "signup-create X 1 qwertyuiop"} {
		got := manage(t, as, "admin", line)
		if !strings.HasPrefix(got, ":x: ") || !strings.Contains(got, "FAIL: ") {
			t.Errorf("%q should fail, got %q", line, got)
		}
	}
}
