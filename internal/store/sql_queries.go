package store

const (
	insertUser = `INSERT INTO users (username, created_at, updated_at)
	VALUES (?, ?, ?)`

	findUserByID = `SELECT id, username, created_at, updated_at
	FROM users
	WHERE id = ?`

	findUserByUsername = `SELECT id, username, created_at, updated_at
	FROM users
	WHERE username = ?`

	deleteUserByID = `DELETE FROM users
	WHERE id = ?`

	insertMessage = `INSERT INTO chat_messages (user_id, provider, role, content, timestamp)
	VALUES (?, ?, ?, ?, ?)`

	findMessageByID = `SELECT id, user_id, provider, role, content, timestamp
	FROM chat_messages
	WHERE id = ?`

	deleteMessagesByUserID = `DELETE FROM chat_messages
	WHERE user_id = ?`

	countMessagesByUserID = `SELECT COUNT(*) AS count
	FROM chat_messages
	WHERE user_id = ?`
)
