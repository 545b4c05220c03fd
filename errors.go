/*
 * Copyright 2024 the bitbox-torture authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package torture

import "github.com/pkg/errors"

// ErrDatabaseExists is returned by a fill when the target already holds a
// database and neither the overwrite nor the continue policy was selected.
// Nothing has been mutated when this is returned.
var ErrDatabaseExists = errors.New("database already exists")

// ErrDatabaseMissing is returned by stat when there is no database at the
// target path. Stat never creates one.
var ErrDatabaseMissing = errors.New("database does not exist")
