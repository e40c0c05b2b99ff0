package model

import (
	"fmt"
	"net/url"
	"strings"
)

// RankedWallet pairs a final-standing member with their (possibly missing)
// wallet address.
type RankedWallet struct {
	Place       int    `json:"place"`
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Wallet      string `json:"wallet"`
}

// SubmissionPayload carries everything a front end needs to render the
// external-ledger submission link for a completed session. Wallets are
// opaque here; members without one get a blank vote parameter and show up
// in MissingWallets.
type SubmissionPayload struct {
	URL            string         `json:"url"`
	GroupNumber    string         `json:"group_number"`
	Wallets        []RankedWallet `json:"wallets"`
	MissingWallets []string       `json:"missing_wallets"`
}

// BuildSubmissionPayload assembles the submitBreakout link for a final
// ordering: <base>/submitBreakout?groupnumber=G&vote1=..&vote2=..
func BuildSubmissionPayload(baseURL, groupNumber string, wallets []RankedWallet) SubmissionPayload {
	if groupNumber == "" {
		groupNumber = "1"
	}
	var params []string
	var missing []string
	for i, w := range wallets {
		params = append(params, fmt.Sprintf("vote%d=%s", i+1, url.QueryEscape(w.Wallet)))
		if w.Wallet == "" {
			name := w.DisplayName
			if name == "" {
				name = w.MemberID
			}
			missing = append(missing, name)
		}
	}
	u := fmt.Sprintf("%s/submitBreakout?groupnumber=%s&%s",
		strings.TrimRight(baseURL, "/"), url.QueryEscape(groupNumber), strings.Join(params, "&"))
	return SubmissionPayload{
		URL:            u,
		GroupNumber:    groupNumber,
		Wallets:        wallets,
		MissingWallets: missing,
	}
}

// CompletionResult is emitted once per completed session: the final ordered
// rankings plus the ledger submission payload.
type CompletionResult struct {
	Session    SessionView       `json:"session"`
	Rankings   []HistoryEntry    `json:"rankings"`
	Submission SubmissionPayload `json:"submission"`
	RecordID   string            `json:"record_id"`
}
