// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package archive

// run holds one planning run; messages is the snappy compressed JSON export.
const runTableSchema = `
create table if not exists run (
	id text primary key,
	createdAt integer,
	network text,
	height integer,
	summary blob,
	currentTotal text,
	obligatedTotal text,
	passed integer,
	messages blob
);

CREATE INDEX if not exists createdAtIndex on run(createdAt);
CREATE INDEX if not exists networkIndex on run(network);
`
