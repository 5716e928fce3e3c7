// Package domain defines the core business entities of the study platform:
// users, transcripts, the flashcards generated from them, and the
// spaced-repetition scheduling state tracked per user and card.
package domain
