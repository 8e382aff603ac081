package handler_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"showdownbot/src-server/discord"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

// eventpopKey stands in for the ticket gateway's signing key.
var eventpopKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

func signTicket(t *testing.T, ticket utils.EventpopTicket) string {
	t.Helper()
	headerJson, _ := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	claimsJson, err := json.Marshal(ticket)
	if err != nil {
		t.Fatal(err)
	}
	signingInput := base64.RawURLEncoding.EncodeToString(headerJson) + "." + base64.RawURLEncoding.EncodeToString(claimsJson)
	digest := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, eventpopKey(), crypto.SHA256, digest[:])
	if err != nil {
		t.Fatal(err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

func eventpopCallback(t *testing.T, as *utils.AppState, idToken, ticket string) (string, error) {
	t.Helper()
	target := "/showdown?action=callback/eventpop&id_token=" + url.QueryEscape(idToken) + "&ticket=" + url.QueryEscape(ticket)
	return as.Bot.ProcessHttpRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
}

func TestEventpopCommand(t *testing.T) {
	as := newTestAppState(t)
	fake := dispatch(t, as, discord.FakeCommand(discord.FakeUserID, "eventpop", ""))

	data := fake.Responses[0].Data
	if data.Content != ":pleading_face: Please click the link below to link your Eventpop ticket: :arrow_down:" {
		t.Fatalf("content = %q", data.Content)
	}
	link, err := url.Parse(data.Embeds[0].URL)
	if err != nil {
		t.Fatal(err)
	}
	target := link.Query().Get("target")
	if !strings.HasSuffix(target, "&ticket=%s") {
		t.Fatalf("target = %q", target)
	}
	callback, err := url.Parse(target)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := as.IDToken.Verify(callback.Query().Get("id_token"), idtoken.AudienceEventpopLinking)
	if err != nil {
		t.Fatalf("id_token should be valid for ticket linking: %v", err)
	}
	if claims.DiscordID() != discord.FakeUserID {
		t.Fatalf("id token minted for %q", claims.DiscordID())
	}
}

func TestEventpopCallbackLinksTicket(t *testing.T) {
	as := newTestAppState(t)
	user := &discordgo.User{ID: "1", Username: "user1"}
	idToken, err := as.IDToken.Mint(user, idtoken.AudienceEventpopLinking)
	if err != nil {
		t.Fatal(err)
	}
	ticket := signTicket(t, utils.EventpopTicket{
		EventID:       13449,
		TicketID:      42,
		Firstname:     "Thai",
		Lastname:      "Pangsakulyanont",
		ReferenceCode: "REF1",
		TicketType:    "Early bird",
	})

	body, err := eventpopCallback(t, as, idToken, ticket)
	if err != nil {
		t.Fatal(err)
	}
	want := `Linked: "` + user.String() + `" <-> "Thai Pangsakulyanont [REF1] (Early bird)"`
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}

	tickets, err := model.ListEventpopTickets(context.Background(), as.BunDB, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 1 || tickets[0].ID != "discord1-42" || tickets[0].ReferenceCode != "REF1" {
		t.Fatalf("unexpected tickets %+v", tickets)
	}
	fake := as.Session.(*discord.FakeSession)
	if diff := cmp.Diff([]string{discord.FakeGuildID + "/1/role-1"}, fake.RolesAdded); diff != "" {
		t.Fatalf("unexpected role grants (-want +got):\n%s", diff)
	}
}

func TestEventpopCallbackOtherEventGetsNoRole(t *testing.T) {
	as := newTestAppState(t)
	idToken, err := as.IDToken.Mint(&discordgo.User{ID: "1", Username: "user1"}, idtoken.AudienceEventpopLinking)
	if err != nil {
		t.Fatal(err)
	}
	ticket := signTicket(t, utils.EventpopTicket{EventID: 1, TicketID: 7, ReferenceCode: "R", TicketType: "T"})
	if _, err := eventpopCallback(t, as, idToken, ticket); err != nil {
		t.Fatal(err)
	}
	if n := len(as.Session.(*discord.FakeSession).RolesAdded); n != 0 {
		t.Fatalf("expected no role for another event, got %d grants", n)
	}
}

func TestEventpopCallbackRejects(t *testing.T) {
	as := newTestAppState(t)
	user := &discordgo.User{ID: "1", Username: "user1"}
	githubToken, err := as.IDToken.Mint(user, idtoken.AudienceGitHubLinking)
	if err != nil {
		t.Fatal(err)
	}
	idToken, err := as.IDToken.Mint(user, idtoken.AudienceEventpopLinking)
	if err != nil {
		t.Fatal(err)
	}
	ticket := signTicket(t, utils.EventpopTicket{EventID: 13449, TicketID: 1})

	for _, tc := range []struct {
		name    string
		idToken string
		ticket  string
	}{
		{"id token for another audience", githubToken, ticket},
		{"tampered ticket", idToken, ticket[:len(ticket)-4] + "AAAA"},
		{"missing ticket", idToken, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := eventpopCallback(t, as, tc.idToken, tc.ticket); err == nil {
				t.Fatalf("expected the callback to fail")
			}
		})
	}
	tickets, err := model.ListEventpopTickets(context.Background(), as.BunDB, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 0 {
		t.Fatalf("no ticket should be linked, got %+v", tickets)
	}
}
