package graph

// User is a directory entry with the fields mailclerk cares about.
type User struct {
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
}

// userList is the shape of a Graph /users collection response.
type userList struct {
	Value []User `json:"value"`
}

// Message is an outgoing email.
type Message struct {
	// To is the recipient address.
	To string

	// Subject is the subject line.
	Subject string

	// Body is the plain-text content.
	Body string
}

// Wire types for the Graph sendMail payload.

type sendMailRequest struct {
	Message sendMailMessage `json:"message"`
}

type sendMailMessage struct {
	Subject      string      `json:"subject"`
	Body         itemBody    `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}
