package transport

import "golang.org/x/crypto/ssh"

// MakeNoAuth returns a server config that lets every client in. Users
// authenticate in-protocol once connected.
func MakeNoAuth() *ssh.ServerConfig {
	config := ssh.ServerConfig{
		NoClientAuth: false,
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			perm := &ssh.Permissions{Extensions: map[string]string{"fingerprint": Fingerprint(key)}}
			return perm, nil
		},
		KeyboardInteractiveCallback: func(conn ssh.ConnMetadata, challenge ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			return nil, nil
		},
	}

	return &config
}

// Fingerprint renders a public key as its SHA256 fingerprint.
func Fingerprint(k ssh.PublicKey) string {
	return ssh.FingerprintSHA256(k)
}
