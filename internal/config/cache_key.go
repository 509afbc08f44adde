package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a quiz definition including its answer key
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// OTPKey returns the cache key holding the pending code for an email or mobile number
func (r *CacheKeyStruct) OTPKey(target string) string {
	return fmt.Sprintf("otp:%s:code", normalizeTarget(target))
}

// OTPVerifiedKey returns the cache key marking a target as verified
func (r *CacheKeyStruct) OTPVerifiedKey(target string) string {
	return fmt.Sprintf("otp:%s:verified", normalizeTarget(target))
}

// UserRevokedAtKey returns the cache key holding the unix time in
// milliseconds up to which a user's tokens are no longer accepted
func (r *CacheKeyStruct) UserRevokedAtKey(userID string) string {
	return fmt.Sprintf("login:%s:revoked_at", userID)
}

func normalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}

var CacheKey = NewCacheKeyStruct()
