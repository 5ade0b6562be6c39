package gateway

// Wire protocol messages. Shapes are part of the client contract; tests
// assert on them verbatim.
const (
	welcomeBanner = "Welcome to Skirmish! Type 'help' for the list of commands."

	helpText = "Commands:\n" +
		"  register <username> <password>  create an account and find a match\n" +
		"  login <username> <password>     log in and find a match\n" +
		"  logout <token>                  end your session\n" +
		"  help                            show this message\n" +
		"While in a match, anything you type is played as a game action."

	usageRegister = "Usage: register <username> <password>"
	usageLogin    = "Usage: login <username> <password>"
	usageLogout   = "Usage: logout <token>"

	errUsernameExists  = "Error: Username already exists."
	errUserNotFound    = "Error: User not found!"
	errWrongPassword   = "Error: Incorrect password"
	errAlreadyLoggedIn = "Error: You are already logged in!"

	invalidToken  = "Invalid token!"
	logoutSuccess = "Success!"

	stillInQueue = "Still in queue! Relaxing the rank match."

	// disconnectSentinel trails the final game-over message so clients
	// know to hang up
	disconnectSentinel = "DISCONNECT"
)
