package services

import "unicode/utf16"

var anonAdjectives = [...]string{
	"Brave", "Gentle", "Kind", "Peaceful", "Calm",
	"Hopeful", "Serene", "Wise", "Bright", "Warm",
	"Caring", "Tender", "Quiet", "Strong", "Resilient",
	"Mindful", "Patient", "Grateful", "Joyful", "Radiant",
}

var anonAnimals = [...]string{
	"Fox", "Owl", "Bear", "Deer", "Wolf",
	"Hawk", "Swan", "Dove", "Otter", "Rabbit",
	"Butterfly", "Phoenix", "Dolphin", "Panda", "Koala",
	"Eagle", "Hummingbird", "Lion", "Tiger", "Sparrow",
}

// AnonName derives a stable display name from an anonymous identity. The
// hash is the sum of the UTF-16 code units so web clients compute the same
// name locally.
func AnonName(identity string) string {
	var hash int
	for _, u := range utf16.Encode([]rune(identity)) {
		hash += int(u)
	}
	adj := anonAdjectives[hash%len(anonAdjectives)]
	animal := anonAnimals[(hash/len(anonAdjectives))%len(anonAnimals)]
	return adj + " " + animal
}
