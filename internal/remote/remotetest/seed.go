package remotetest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/userdesk/internal/user"
)

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "John", "Radia", "Niklaus"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Backus", "Perlman", "Wirth"}
)

// Seed generates n users created one hour apart from start. Every third
// user is deactivated. Ids are random.
func Seed(n int, start time.Time) []user.User {
	users := make([]user.User, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		users = append(users, user.User{
			ID:          uuid.New(),
			Name:        first,
			Surname:     last,
			Email:       fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			PhoneNumber: fmt.Sprintf("+420 777 %03d %03d", i/1000, i%1000),
			Active:      i%3 != 2,
			CreatedAt:   start.Add(time.Duration(i) * time.Hour),
		})
	}
	return users
}
