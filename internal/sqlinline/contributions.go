package sqlinline

const QListContributionsByOwner = `--sql f9f0787d-e041-4b8f-afb4-274e0b7d75e8
select id::text, user_id, coin, coin_price, contribution_amount, coin_quantity, date, created_at
from contributions
where user_id = $1::text
order by date desc, created_at desc;
`

const QInsertContribution = `--sql f981737f-e3cb-4ba8-9390-a346cb12a026
insert into contributions (id, user_id, coin, coin_price, contribution_amount, coin_quantity, date, created_at)
values ($1::uuid, $2::text, $3::text, $4::numeric, $5::numeric, $6::numeric, $7::timestamptz, $8::timestamptz)
returning id::text, user_id, coin, coin_price, contribution_amount, coin_quantity, date, created_at;
`

// QDeleteOwnedContribution deletes in one statement so ownership check and
// removal cannot interleave with another delete.
const QDeleteOwnedContribution = `--sql 14874228-7ffb-4812-800b-49c97bc3707d
delete from contributions
where id = $1::uuid and user_id = $2::text;
`
