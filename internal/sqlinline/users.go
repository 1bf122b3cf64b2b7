package sqlinline

// QEnsureUser inserts the user when absent and returns the stored row either
// way. The last column reports whether this statement created it.
const QEnsureUser = `--sql 9d5b4dbc-f46e-4863-bbb2-f7127d1ebdf9
with inserted as (
    insert into users (id, email, name, avatar, created_at)
    values ($1::text, $2::text, $3::text, $4::text, now())
    on conflict (id) do nothing
    returning id, email, name, avatar, created_at
)
select id, email, name, avatar, created_at, true as created from inserted
union all
select id, email, name, avatar, created_at, false as created from users where id = $1::text
limit 1;
`

const QSelectUserByID = `--sql b434b698-3159-499a-9b16-4bd89def6ebf
select id, email, name, avatar, created_at
from users
where id = $1::text
limit 1;
`
