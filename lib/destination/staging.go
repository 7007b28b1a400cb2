package destination

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artie-labs/bulksync/lib/config/constants"
)

// ErrTableNotFound is returned by DescribeTable when the catalog has no columns for the table.
var ErrTableNotFound = errors.New("table does not exist")

// Postgres truncates identifiers past 63 bytes, the staging name is kept under it for every destination.
const maxStagingTableNameLength = 63

var stagingTableNameRegex = regexp.MustCompile(constants.StagingTablePrefix + `_([0-9a-f]{12})_(\d+)$`)

// StagingTableName returns `<base>__bulk_<random>_<expiry unix>`.
// The random part keeps concurrent operations against the same table apart, the expiry lets a sweep find leftovers.
func StagingTableName(base string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	suffix := fmt.Sprintf("%s_%s_%d", constants.StagingTablePrefix, random, now.Add(constants.StagingTableTTL).Unix())
	if maxBase := maxStagingTableNameLength - len(suffix); len(base) > maxBase {
		base = base[:maxBase]
	}

	return base + suffix
}

// StagingTableExpired reports whether [name] is a staging table whose expiry is before [now].
func StagingTableExpired(name string, now time.Time) bool {
	matches := stagingTableNameRegex.FindStringSubmatch(strings.ToLower(name))
	if len(matches) != 3 {
		return false
	}

	expiry, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return false
	}

	return time.Unix(expiry, 0).Before(now)
}
