package main

const kvNamespace = "KF:v1"

func keyConfig(community string) string {
	return kvNamespace + ":" + community + ":config"
}

func keyMeta(community string) string {
	return kvNamespace + ":" + community + ":meta"
}

func keyState(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":state"
}

func keyVotes(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":votes"
}

func keyUsers(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":users"
}

func keyLeaderboardTop(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":leaderboard-top"
}

func keyLeaderboardUser(community, day, userHash string) string {
	return kvNamespace + ":" + community + ":" + day + ":leaderboard-user:" + userHash
}

func keyLeaderboardName(community, day, userHash string) string {
	return kvNamespace + ":" + community + ":" + day + ":leaderboard-name:" + userHash
}

func keyContributors(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":contributors"
}

func keyContribUser(community, day, userHash string) string {
	return kvNamespace + ":" + community + ":" + day + ":contrib-user:" + userHash
}

func keyTop3(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":top3"
}

func keyAudit(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":audit"
}

func keyPollCursor(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":poll-cursor"
}

func keyCompletedAt(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":completedAt"
}

func keyCompletedNotified(community, day string) string {
	return kvNamespace + ":" + community + ":" + day + ":completedNotified"
}
