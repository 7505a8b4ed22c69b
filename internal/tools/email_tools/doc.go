// Package email_tools provides the draft and send capabilities.
//
// Drafting is a two-step approval flow: save_email stores a draft for a
// recipient (replacing any earlier draft for the same address), get_email
// lets the model read it back for review, and send_email submits it through
// the Microsoft Graph mail API. The draft is deleted only after the mail
// service confirms the send; on failure it stays pending so the user can ask
// the agent to try again.
package email_tools
