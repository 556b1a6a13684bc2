// Package lib holds infrastructure that does not belong to one domain:
// the Redis backed flash message store and the asynq job service.
package lib
