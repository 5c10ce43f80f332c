package chat

import (
	"github.com/shazow/roomchat/set"
)

type accountsMsg interface {
	isAccountsMsg()
}

type createMsg struct {
	user   string
	pass   string
	member Member
}

type loginMsg struct {
	user   string
	pass   string
	member Member
}

type countMsg struct {
	reply chan<- int
}

func (createMsg) isAccountsMsg() {}
func (loginMsg) isAccountsMsg()  {}
func (countMsg) isAccountsMsg()  {}

// Accounts is the credential store: user names mapped to passwords.
// Entries are only ever added. Requests are served one at a time, so two
// concurrent creates for the same user can not both succeed.
type Accounts struct {
	inbox *mailbox[accountsMsg]

	// Owned by the serving goroutine.
	logins *set.Set
}

// NewAccounts creates an empty account store and starts serving it.
func NewAccounts() *Accounts {
	a := &Accounts{
		inbox:  newMailbox[accountsMsg](),
		logins: set.New(),
	}
	go a.serve()
	return a
}

// Create registers user with pass and replies AccountCreated, or
// AccountRejected if user already exists.
func (a *Accounts) Create(user, pass string, m Member) bool {
	return a.inbox.send(createMsg{user, pass, m})
}

// Login replies LoginAccepted if user exists and pass matches exactly,
// LoginRejected otherwise.
func (a *Accounts) Login(user, pass string, m Member) bool {
	return a.inbox.send(loginMsg{user, pass, m})
}

// Len returns the number of accounts.
func (a *Accounts) Len() int {
	n, _ := ask(a.inbox, func(reply chan<- int) accountsMsg {
		return countMsg{reply}
	})
	return n
}

// Close stops the account store.
func (a *Accounts) Close() {
	a.inbox.send(stopMsg{})
}

// Done is closed once the account store has stopped.
func (a *Accounts) Done() <-chan struct{} {
	return a.inbox.done
}

func (a *Accounts) serve() {
	defer a.inbox.close()
	for a.handle(a.inbox.receive()) {
	}
	logger.Printf("Accounts stopped with %d accounts", a.logins.Len())
}

func (a *Accounts) handle(msg accountsMsg) bool {
	switch msg := msg.(type) {
	case createMsg:
		if err := a.logins.AddNew(set.Itemize(msg.user, msg.pass)); err != nil {
			msg.member.Send(AccountRejected{User: msg.user})
			return true
		}
		logger.Printf("Account created: %s", msg.user)
		msg.member.Send(AccountCreated{User: msg.user})
	case loginMsg:
		item, err := a.logins.Get(msg.user)
		if err != nil || item.Value().(string) != msg.pass {
			msg.member.Send(LoginRejected{User: msg.user})
			return true
		}
		msg.member.Send(LoginAccepted{User: msg.user})
	case countMsg:
		msg.reply <- a.logins.Len()
	case stopMsg:
		return false
	default:
		logger.Printf("Accounts: %s: %T", ErrUnexpectedMessage, msg)
		return false
	}
	return true
}
