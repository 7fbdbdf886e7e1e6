package pubsub

import "github.com/secmon-lab/caseline/pkg/domain/types"

// channelPrefix is part of the wire contract: every server process
// sharing a transport must derive the same channel for a case, so the
// format must stay stable.
const channelPrefix = "caseline-pubsub-case-"

// ChannelKey derives the notification channel for a case. It is a pure
// function of the case ID; two distinct cases never map to the same
// channel.
func ChannelKey(caseID types.CaseID) string {
	return channelPrefix + caseID.String()
}
