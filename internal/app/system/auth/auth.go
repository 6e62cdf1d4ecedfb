package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/system/respond"
)

const (
	isAuthKey    = "is_authenticated"
	actorIDKey   = "actor_id"
	actorName    = "actor_name"
	actorEmail   = "actor_email"
	signedInAtTS = "signed_in_at"
)

// Actor is what we cache in the session and inject into r.Context().
type Actor struct {
	ID    string
	Name  string
	Email string
}

// ObjectID parses the cached id. Returns nil when the session carries
// something that is not a valid hex ObjectID.
func (a *Actor) ObjectID() *primitive.ObjectID {
	if a == nil {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return nil
	}
	return &oid
}

type ctxKey string

const currentActorKey ctxKey = "currentActor"

// CurrentActor returns the signed-in actor and a "found?" flag.
func CurrentActor(r *http.Request) (*Actor, bool) {
	a, ok := r.Context().Value(currentActorKey).(*Actor)
	return a, ok
}

// ActorID returns the signed-in actor's ObjectID, or nil for anonymous
// requests. Deletion stamps record this id next to the deletion time.
func ActorID(r *http.Request) *primitive.ObjectID {
	a, ok := CurrentActor(r)
	if !ok {
		return nil
	}
	return a.ObjectID()
}

// SessionManager owns the cookie store and the middleware that reads it.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. An empty
// sessionKey gets a random key, which invalidates sessions across restarts;
// fine for dev, logged loudly so it is not missed in prod.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}

	key := []byte(sessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("session key not configured; using a random key, sessions will not survive restarts")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SignIn writes the actor into a fresh session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, a Actor) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[actorIDKey] = a.ID
	sess.Values[actorName] = a.Name
	sess.Values[actorEmail] = a.Email
	sess.Values[signedInAtTS] = time.Now().UTC().Unix()
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionActor injects the actor into context if they are signed in.
// Invalid or absent cookies just pass through anonymously.
func (sm *SessionManager) LoadSessionActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			a := &Actor{
				ID:    getString(sess, actorIDKey),
				Name:  getString(sess, actorName),
				Email: getString(sess, actorEmail),
			}
			r = withActor(r, a)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActor ensures there is an actor in context (set by LoadSessionActor).
// Anonymous callers get a 401 envelope.
func (sm *SessionManager) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentActor(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		respond.Fail(w, http.StatusUnauthorized, "authentication required", "no signed-in user")
	})
}

// WithTestActor injects an actor into the request context. Test helper;
// simulates what LoadSessionActor does after a successful cookie read.
func WithTestActor(r *http.Request, a *Actor) *http.Request {
	return withActor(r, a)
}

func withActor(r *http.Request, a *Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentActorKey, a))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
