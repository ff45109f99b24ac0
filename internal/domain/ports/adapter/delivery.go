package adapter

import "context"

// CodeSender delivers a one-time code to a registrant's contact channel
// (SMS or email). Issuance never blocks on delivery: a failed send is logged
// and the user requests a resend.
type CodeSender interface {
	Name() string
	SendCode(ctx context.Context, destination, code string) error
}
