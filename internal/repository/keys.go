package repository

import "github.com/google/uuid"

// Key layout. Composite keys join their parts with "/"; prefix scans rely on
// every id segment having a fixed textual form (uuids), so a scan over
// "votes_by_users/{user}/" can never leak into a neighboring user.
const (
	itemPrefix           = "items/"
	itemsByUserPrefix    = "items_by_user/"
	commentsByUserPrefix = "comments_by_users/"
	commentsByItemPrefix = "comments_by_item/"
	votesByUserPrefix    = "votes_by_users/"
	userPrefix           = "users/"
	usersByLoginPrefix   = "users_by_login/"
	usersBySessionPrefix = "users_by_session/"
	usersByStripePrefix  = "users_by_stripe_customer/"
)

func itemKey(id uuid.UUID) string {
	return itemPrefix + id.String()
}

func itemByUserKey(userID, itemID uuid.UUID) string {
	return itemsByUserPrefix + userID.String() + "/" + itemID.String()
}

func itemsByUserScanPrefix(userID uuid.UUID) string {
	return itemsByUserPrefix + userID.String() + "/"
}

func commentByUserKey(userID, commentID uuid.UUID) string {
	return commentsByUserPrefix + userID.String() + "/" + commentID.String()
}

func commentsByUserScanPrefix(userID uuid.UUID) string {
	return commentsByUserPrefix + userID.String() + "/"
}

func commentByItemKey(itemID, commentID uuid.UUID) string {
	return commentsByItemPrefix + itemID.String() + "/" + commentID.String()
}

func commentsByItemScanPrefix(itemID uuid.UUID) string {
	return commentsByItemPrefix + itemID.String() + "/"
}

func voteKey(userID, itemID uuid.UUID) string {
	return votesByUserPrefix + userID.String() + "/" + itemID.String()
}

func votesByUserScanPrefix(userID uuid.UUID) string {
	return votesByUserPrefix + userID.String() + "/"
}

func userKey(id uuid.UUID) string {
	return userPrefix + id.String()
}

func userByLoginKey(login string) string {
	return usersByLoginPrefix + login
}

func userBySessionKey(sessionID string) string {
	return usersBySessionPrefix + sessionID
}

func userByStripeKey(customerID string) string {
	return usersByStripePrefix + customerID
}
