package handler

import (
	"showdownbot/src-server/bot"
	"showdownbot/src-server/management"
	"showdownbot/src-server/utils"
)

// Plugins lists every feature plugin in registration order. Earlier plugins
// win when two register the same pattern.
func Plugins(as *utils.AppState) []bot.Plugin {
	return []bot.Plugin{
		management.Plugin(as.Management),
		Ping(as),
		Profile(as),
		Eventpop(as),
		Vote(as),
		Answer(as),
		Signup(as),
		Token(as),
	}
}
