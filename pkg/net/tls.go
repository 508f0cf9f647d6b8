package net

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	stdnet "net"
	"os"
	"path/filepath"

	"github.com/luxfi/semi2k/pkg/party"
)

// TLSConfig locates the X.509 material spec.md 6 describes:
// <ssl_dir>/Party<id>.crt, <ssl_dir>/Party<id>.key, with the rest of
// <ssl_dir> treated as the peer CA pool.
type TLSConfig struct {
	Dir string
}

func partyName(id party.ID) string { return fmt.Sprintf("Party%d", id) }

// load builds a *tls.Config for self, trusting every .crt file under Dir
// as a peer CA, per spec.md 6.
func (c TLSConfig) load(self party.ID) (*tls.Config, error) {
	certPath := filepath.Join(c.Dir, partyName(self)+".crt")
	keyPath := filepath.Join(c.Dir, partyName(self)+".key")
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("semi2k/net: load TLS keypair: %w", err)
	}

	pool := x509.NewCertPool()
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("semi2k/net: read ssl dir: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".crt" {
			continue
		}
		pem, err := os.ReadFile(filepath.Join(c.Dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("semi2k/net: read peer cert %s: %w", e.Name(), err)
		}
		pool.AppendCertsFromPEM(pem)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ClientCAs:    pool,
		MinVersion:   tls.VersionTLS12,
		MaxVersion:   tls.VersionTLS12,
	}, nil
}

// ConnectTLS is Connect, additionally running a TLS 1.2 handshake per
// socket with hostname verification against "Party<peer_id>", per
// spec.md 6 and original_source/src/network/mp_connect.cpp's SSL
// handshake roles (the connector plays the TLS client, the acceptor the
// TLS server, following the same lower-id/higher-id ordering as the
// plaintext id handshake).
func ConnectTLS(ctx context.Context, self party.ID, endpoints []Endpoint, cfg TLSConfig) (*TCP, error) {
	base, err := cfg.load(self)
	if err != nil {
		return nil, err
	}

	wrap := func(conn stdnet.Conn, peer party.ID, isConnector bool) (stdnet.Conn, error) {
		if isConnector {
			clientCfg := base.Clone()
			clientCfg.ServerName = partyName(peer)
			tlsConn := tls.Client(conn, clientCfg)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				return nil, err
			}
			return tlsConn, nil
		}
		serverCfg := base.Clone()
		serverCfg.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConn := tls.Server(conn, serverCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		if err := verifyPeerName(tlsConn, partyName(peer)); err != nil {
			return nil, err
		}
		return tlsConn, nil
	}

	return connectWithWrap(ctx, self, endpoints, wrap)
}

func verifyPeerName(conn *tls.Conn, want string) error {
	state := conn.ConnectionState()
	for _, chain := range state.PeerCertificates {
		if chain.Subject.CommonName == want {
			return nil
		}
		for _, name := range chain.DNSNames {
			if name == want {
				return nil
			}
		}
	}
	return fmt.Errorf("semi2k/net: peer certificate does not match %q", want)
}
